package config

import (
	"errors"
	"fmt"

	"github.com/mcpjungle/mcphost/internal/model"
	"github.com/mcpjungle/mcphost/internal/service/discovery"
	"github.com/mcpjungle/mcphost/pkg/types"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Seed is the content of a seed file: servers known in advance, each with the tools it offers.
//
//	servers:
//	  - name: calculator
//	    host: 10.0.0.5
//	    port: 9000
//	    tags: [math]
//	    tools:
//	      - name: sum
//	        input_schema: {type: object}
//	        output_schema: {type: object}
type Seed struct {
	Servers []SeedServer `yaml:"servers"`
}

// SeedServer is a server entry of the seed file.
type SeedServer struct {
	types.RegisterServerInput `yaml:",inline"`

	Tools []types.RegisterToolInput `yaml:"tools"`
}

// Registrar accepts the registrations described by a seed file.
type Registrar interface {
	RegisterServer(in discovery.RegisterInput) (string, error)
	RegisterTool(tool model.Tool) (string, error)
}

// SeedResult summarizes what a seed file registered.
type SeedResult struct {
	// ServerIDs holds the ids assigned to the seeded servers, in file order.
	ServerIDs []string
	Tools     int
}

// LoadSeed reads and validates a seed file.
func LoadSeed(fs afero.Fs, path string) (*Seed, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the mandatory fields of every entry.
// Schema shape is left to the registrar.
func (s *Seed) Validate() error {
	var errs []error
	for i, srv := range s.Servers {
		if srv.Name == "" {
			errs = append(errs, fmt.Errorf("servers[%d]: name is required", i))
		}
		if srv.Host == "" {
			errs = append(errs, fmt.Errorf("servers[%d]: host is required", i))
		}
		if srv.Port < 1 || srv.Port > 65535 {
			errs = append(errs, fmt.Errorf("servers[%d]: port must be between 1 and 65535", i))
		}
		for j, tool := range srv.Tools {
			if tool.Name == "" {
				errs = append(errs, fmt.Errorf("servers[%d].tools[%d]: name is required", i, j))
			}
		}
	}
	return errors.Join(errs...)
}

// Apply registers every server of the seed and then its tools.
// It stops at the first failed registration.
func (s *Seed) Apply(r Registrar) (*SeedResult, error) {
	res := &SeedResult{ServerIDs: make([]string, 0, len(s.Servers))}
	for _, srv := range s.Servers {
		id, err := r.RegisterServer(discovery.RegisterInput{
			Name:        srv.Name,
			Description: srv.Description,
			Version:     srv.Version,
			Host:        srv.Host,
			Port:        srv.Port,
			Tags:        srv.Tags,
			Metadata:    srv.Metadata,
		})
		if err != nil {
			return res, fmt.Errorf("failed to register server %s: %w", srv.Name, err)
		}
		res.ServerIDs = append(res.ServerIDs, id)

		for _, tool := range srv.Tools {
			_, err := r.RegisterTool(model.Tool{
				Name:         tool.Name,
				Description:  tool.Description,
				InputSchema:  tool.InputSchema,
				OutputSchema: tool.OutputSchema,
				Tags:         model.NewTagSet(tool.Tags...),
				ServerID:     id,
				Version:      tool.Version,
			})
			if err != nil {
				return res, fmt.Errorf("failed to register tool %s on server %s: %w", tool.Name, srv.Name, err)
			}
			res.Tools++
		}
	}
	return res, nil
}
