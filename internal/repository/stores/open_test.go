package stores

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mamadbah2/salesdesk/internal/config"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StoreConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.StoreConfig{Driver: config.DriverMemory}},
		{name: "sqlite", cfg: config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "sales.db")}},
		{name: "unknown driver", cfg: config.StoreConfig{Driver: "postgres"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(context.Background(), tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Open() error = nil, want failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer store.Close(context.Background())
			if _, err := store.ListSales(context.Background()); err != nil {
				t.Errorf("ListSales() on a fresh store error = %v", err)
			}
		})
	}
}
