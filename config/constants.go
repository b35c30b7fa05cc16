package config

// Version is the service version reported by /about and the version command.
const Version = "0.1.0"

const (
	DefaultListenAddr = ":8000"
	DefaultDBBackend  = "leveldb"
	DefaultDBPath     = "./data/safetx"
)
