package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernwehlabs/recalld/internal/config"
)

func TestNewService(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.GenerationConfig
		wantErr bool
	}{
		{
			name: "valid configuration",
			cfg: config.GenerationConfig{
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
				APIKey:  "sk-test",
			},
		},
		{
			name:    "missing base URL",
			cfg:     config.GenerationConfig{Model: "gpt-4o-mini"},
			wantErr: true,
		},
		{
			name:    "missing model",
			cfg:     config.GenerationConfig{BaseURL: "https://api.openai.com/v1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewService(tt.cfg)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}
