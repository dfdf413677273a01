package routing

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/service"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed default_routing.yaml
var defaultTable []byte

// Load reads the routing table from path, or the built-in table when path
// is empty.
func Load(path string, logger *zap.Logger) (*service.RoutingTable, error) {
	data := defaultTable
	source := "embedded"

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read routing table: %w", err)
		}
		data = b
		source = path
	}

	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("routing table %s: %w", source, err)
	}

	logger.Info("Routing table loaded",
		zap.String("source", source),
		zap.Int("regions", len(table.Regions)),
		zap.Int("support_tiers", len(table.SupportTiers)))

	return table, nil
}

// Parse decodes and validates a routing table document
func Parse(data []byte) (*service.RoutingTable, error) {
	var table service.RoutingTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}
