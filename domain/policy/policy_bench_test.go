package policy_test

import (
	"testing"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/policy"
)

func BenchmarkCheckNetwork(b *testing.B) {
	p := policy.NewPolicy(&entities.GrantSet{
		Network: &entities.NetworkCapability{
			Rules: []entities.NetworkRule{
				{Hosts: []string{"example.com", "*.internal"}, Ports: []string{"80", "443"}},
			},
		},
	}, policy.WithDenialHandler(&policy.NopDenialHandler{}))
	req := entities.NetworkRequest{Host: "example.com", Port: 80}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.CheckNetwork(ctx, req)
	}
}

func BenchmarkCheckFile(b *testing.B) {
	p := policy.NewPolicy(&entities.GrantSet{
		Files: &entities.FileCapability{Paths: []string{"/data/**", "/etc/hosts"}},
	},
		policy.WithDenialHandler(&policy.NopDenialHandler{}),
		policy.WithSymlinkResolution(false),
	)
	req := entities.FileRequest{Path: "/data/foo/bar"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.CheckFile(ctx, req)
	}
}

func BenchmarkCheckStorage(b *testing.B) {
	p := policy.NewPolicy(&entities.GrantSet{
		Storage: &entities.StorageCapability{
			Rules: []entities.StorageRule{
				{Keys: []string{"config/*", "cache/**"}, Operation: "read-write"},
			},
		},
	}, policy.WithDenialHandler(&policy.NopDenialHandler{}))
	req := entities.StorageRequest{Key: "config/database", Operation: "read"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.CheckStorage(ctx, req)
	}
}
