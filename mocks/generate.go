package mocks

//go:generate mockgen -destination=./mock_source.go -package=mocks github.com/shekel-lab/ratewatch/pkg/ratesource Source
