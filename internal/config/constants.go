package config

import "time"

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the local annotation database
	DefaultDatabasePath = "./bookmemo.db"
)

// Default DynamoDB region and tables
const (
	DefaultAWSRegion   = "ap-northeast-1"
	DefaultMirrorTable = "summaries"
	DefaultUsersTable  = "users"
)

// Default concurrency and timeouts
const (
	DefaultWorkers       = 4
	DefaultQueueSize     = 256
	DefaultDrainTimeout  = 60 * time.Second
	DefaultStoreTimeout  = 10 * time.Second
	DefaultMirrorTimeout = 10 * time.Second
)
