package api

import (
	"github.com/mcpjungle/mcphost/internal/model"
	"github.com/mcpjungle/mcphost/pkg/types"
)

func toServer(s model.Server) *types.Server {
	return &types.Server{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		Version:       s.Version,
		Host:          s.Host,
		Port:          s.Port,
		Address:       s.Address(),
		Tags:          s.Tags.Slice(),
		Metadata:      s.Metadata,
		LastHeartbeat: s.LastHeartbeat,
		Active:        s.Active,
	}
}

func toServers(records []model.Server) []*types.Server {
	servers := make([]*types.Server, len(records))
	for i, r := range records {
		servers[i] = toServer(r)
	}
	return servers
}

func toTool(t model.Tool) *types.Tool {
	return &types.Tool{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		InputSchema:  t.InputSchema,
		OutputSchema: t.OutputSchema,
		Tags:         t.Tags.Slice(),
		ServerID:     t.ServerID,
		Version:      t.Version,
		LastUpdated:  t.LastUpdated,
		Active:       t.Active,
	}
}

func toTools(records []model.Tool) []*types.Tool {
	tools := make([]*types.Tool, len(records))
	for i, r := range records {
		tools[i] = toTool(r)
	}
	return tools
}

func toRouteResult(s model.Server, strategy string) *types.RouteResult {
	return &types.RouteResult{
		ServerID: s.ID,
		Name:     s.Name,
		Host:     s.Host,
		Port:     s.Port,
		Address:  s.Address(),
		Strategy: strategy,
	}
}

func toEvent(e model.DispatchEvent) (*types.DispatchEvent, error) {
	affected, err := e.GetAffectedTools()
	if err != nil {
		return nil, err
	}
	return &types.DispatchEvent{
		ID:            e.ID,
		Kind:          string(e.Kind),
		ToolName:      e.ToolName,
		ServerID:      e.ServerID,
		Strategy:      e.Strategy,
		AffectedTools: affected,
		CreatedAt:     e.CreatedAt,
	}, nil
}
