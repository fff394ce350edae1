package config

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults with distinct destination are valid",
			mutate:  func(c *Config) { c.DestinationHost = "10.0.0.1" },
			wantErr: false,
		},
		{
			name:    "empty source host is invalid",
			mutate:  func(c *Config) { c.SourceHost = ""; c.DestinationHost = "10.0.0.1" },
			wantErr: true,
		},
		{
			name: "unknown source kind is invalid",
			mutate: func(c *Config) {
				c.SourceKind = "oracle"
				c.DestinationHost = "10.0.0.1"
			},
			wantErr: true,
		},
		{
			name: "sql source without database is invalid",
			mutate: func(c *Config) {
				c.SourceKind = string(SourcePostgreSQL)
				c.DestinationHost = "10.0.0.1"
			},
			wantErr: true,
		},
		{
			name: "sql source with database is valid",
			mutate: func(c *Config) {
				c.SourceKind = string(SourcePostgreSQL)
				c.SourceDatabase = "app"
				c.DestinationHost = "10.0.0.1"
			},
			wantErr: false,
		},
		{
			name:    "identical source and destination endpoints are invalid",
			mutate:  func(c *Config) {},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolvedSourcePort(t *testing.T) {
	tests := []struct {
		kind     SourceKind
		port     int
		wantPort int
	}{
		{SourceMemgraph, 0, 7687},
		{SourcePostgreSQL, 0, 5432},
		{SourceMySQL, 0, 3306},
		{SourcePostgreSQL, 5433, 5433},
	}

	for _, tt := range tests {
		c := Default()
		c.SourceKind = string(tt.kind)
		c.SourcePort = tt.port
		if got := c.ResolvedSourcePort(); got != tt.wantPort {
			t.Errorf("ResolvedSourcePort() for kind=%s port=%d = %d, want %d", tt.kind, tt.port, got, tt.wantPort)
		}
	}
}
