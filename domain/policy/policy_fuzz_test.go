package policy_test

import (
	"testing"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/policy"
)

func FuzzMatchHost(f *testing.F) {
	p := policy.NewPolicy(&entities.GrantSet{
		Network: &entities.NetworkCapability{
			Rules: []entities.NetworkRule{
				{Hosts: []string{"example.com", "*.internal"}, Ports: []string{"80"}},
			},
		},
	}, policy.WithDenialHandler(&policy.NopDenialHandler{}))
	f.Add("example.com")
	f.Add("api.internal")
	f.Add("evil.com")

	f.Fuzz(func(t *testing.T, host string) {
		// We just ensure it doesn't panic
		p.CheckNetwork(ctx, entities.NetworkRequest{Host: host, Port: 80})
	})
}

func FuzzMatchPath(f *testing.F) {
	p := policy.NewPolicy(&entities.GrantSet{
		Files: &entities.FileCapability{Paths: []string{"/data/**", "/etc/hosts"}},
	},
		policy.WithDenialHandler(&policy.NopDenialHandler{}),
		policy.WithSymlinkResolution(false),
	)
	f.Add("/data/file.txt")
	f.Add("/etc/hosts")
	f.Add("/etc/passwd")

	f.Fuzz(func(t *testing.T, path string) {
		p.CheckFile(ctx, entities.FileRequest{Path: path})
	})
}

func FuzzMatchKey(f *testing.F) {
	p := policy.NewPolicy(&entities.GrantSet{
		Storage: &entities.StorageCapability{
			Rules: []entities.StorageRule{{Keys: []string{"cache/**"}, Operation: "read-write"}},
		},
	}, policy.WithDenialHandler(&policy.NopDenialHandler{}))
	f.Add("cache/a", "read")
	f.Add("[", "write")

	f.Fuzz(func(t *testing.T, key, op string) {
		p.CheckStorage(ctx, entities.StorageRequest{Key: key, Operation: op})
	})
}
