package entities

// GrantSet limits what a guest may reach. A nil capability is unrestricted;
// a non-nil one allows only what its rules match.
type GrantSet struct {
	Network *NetworkCapability
	Files   *FileCapability
	Storage *StorageCapability
}

// NetworkCapability lists the hosts fetch may contact.
type NetworkCapability struct {
	Rules []NetworkRule
}

// NetworkRule matches a host glob against a set of ports. Ports are single
// numbers, "lo-hi" ranges, or "*"; no ports means any port.
type NetworkRule struct {
	Hosts []string `yaml:"hosts" json:"hosts"`
	Ports []string `yaml:"ports,omitempty" json:"ports,omitempty"`
}

// FileCapability lists path globs file-open may return.
type FileCapability struct {
	Paths []string
}

// StorageCapability lists key globs the key-value store accepts.
type StorageCapability struct {
	Rules []StorageRule
}

// StorageRule matches keys for an operation: "read", "write" or
// "read-write".
type StorageRule struct {
	Keys      []string `yaml:"keys" json:"keys"`
	Operation string   `yaml:"operation" json:"operation"`
}

// NetworkRequest is one outgoing connection.
type NetworkRequest struct {
	Host string
	Port int
}

// FileRequest is one file about to be handed to the guest.
type FileRequest struct {
	Path string
}

// StorageRequest is one key-value operation.
type StorageRequest struct {
	Key       string
	Operation string
}
