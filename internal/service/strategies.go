package service

import (
	"encoding/json"
	"fmt"
	"os"

	"tubefetch/internal/core/domain"
)

// DefaultStrategies returns the built-in candidate list, highest priority first.
func DefaultStrategies() []domain.Strategy {
	base := domain.Options{NoCheckCertificate: true, NoWarnings: true}
	with := func(client string) domain.Options {
		o := base
		o.PlayerClient = client
		return o
	}

	return []domain.Strategy{
		{Name: "Web", Options: base},
		{Name: "Web + Cookies", Options: base, RequiresCookies: true},
		{Name: "iOS", Options: with("ios")},
		{Name: "Android", Options: with("android")},
		{Name: "Smart TV", Options: with("tv")},
	}
}

// LoadStrategies reads a candidate list from path. A missing file yields the
// built-in list; an unreadable, empty or unnamed list is an error.
func LoadStrategies(path string) ([]domain.Strategy, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultStrategies(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var list []domain.Strategy
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%s lists no strategies", path)
	}
	for i, s := range list {
		if s.Name == "" {
			return nil, fmt.Errorf("%s: strategy %d has no name", path, i)
		}
	}
	return list, nil
}
