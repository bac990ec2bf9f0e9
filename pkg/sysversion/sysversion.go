package sysversion

import (
	"context"
	"fmt"

	"github.com/fox-one/pkg/property"
)

const (
	SysVersionKey = "sysversion"

	// SchemaVersion schema the binary expects, bumped with every table change
	SchemaVersion int64 = 1
)

func ReadSysVersion(ctx context.Context, property property.Store) (int64, error) {
	v, err := property.Get(ctx, SysVersionKey)
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

// Upgrade record SchemaVersion after a successful migrate
func Upgrade(ctx context.Context, property property.Store) error {
	return property.Save(ctx, SysVersionKey, SchemaVersion)
}

// Require fail when the database was migrated by an older binary
func Require(ctx context.Context, property property.Store) error {
	v, err := ReadSysVersion(ctx, property)
	if err != nil {
		return err
	}

	if v < SchemaVersion {
		return fmt.Errorf("schema version %d, want %d", v, SchemaVersion)
	}

	return nil
}
