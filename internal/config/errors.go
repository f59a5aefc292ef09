package config

import "errors"

var (
	// ErrNoMode is returned when neither a start URL nor a baseline/upgraded pair is provided
	ErrNoMode = errors.New("provide a start URL (single-site crawl) or both --baseline and --upgraded (compare mode)")
	// ErrBothModes is returned when a start URL and a baseline/upgraded pair are both provided
	ErrBothModes = errors.New("a start URL cannot be combined with --baseline/--upgraded")
	// ErrHalfComparePair is returned when only one of --baseline/--upgraded is provided
	ErrHalfComparePair = errors.New("compare mode needs both --baseline and --upgraded")
	// ErrInvalidConcurrency is returned when concurrency is not greater than 0
	ErrInvalidConcurrency = errors.New("concurrency must be greater than 0")
	// ErrInvalidTimeout is returned when the request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("timeout must be greater than 0")
	// ErrEmptyOutput is returned when no output path is configured
	ErrEmptyOutput = errors.New("output path cannot be empty")
)
