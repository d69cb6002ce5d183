package store

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DriverMongo  = "mongo"
	DriverDisk   = "disk"
	DriverMemory = "memory"
)

// Options selects and configures a Tree driver.
type Options struct {
	Driver   string
	DiskPath string
	Mongo    *mongo.Database
}

// Open returns the Tree for opts.Driver.
func Open(opts Options) (Tree, error) {
	switch opts.Driver {
	case DriverMongo:
		if opts.Mongo == nil {
			return nil, fmt.Errorf("store: mongo driver needs a database handle")
		}
		return NewMongo(opts.Mongo), nil
	case DriverDisk:
		if opts.DiskPath == "" {
			return nil, fmt.Errorf("store: disk driver needs a base path")
		}
		return NewDisk(opts.DiskPath), nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", opts.Driver)
	}
}
