package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/FirinKinuo/drag-parser/engine"
	draghttp "github.com/FirinKinuo/drag-parser/http"
	"github.com/FirinKinuo/drag-parser/htmltomarkdown"
	dragzerolog "github.com/FirinKinuo/drag-parser/zerolog"
)

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	extractors, err := c.buildExtractors(deps)
	if err != nil {
		return err
	}

	fetcher := deps.Fetcher
	if fetcher == nil {
		fetcher = dragzerolog.NewLoggingFetcher(
			draghttp.NewFetcher(
				draghttp.WithHostLimiter(draghttp.NewHostLimiter(c.Rate)),
			),
			deps.Logger,
		)
	}

	server := draghttp.NewServer(extractors,
		draghttp.WithFetcher(fetcher),
		draghttp.WithLogger(deps.Logger),
	)

	go func() {
		<-deps.Ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	deps.Logger.Info().
		Str("addr", c.Addr).
		Strs("profiles", profileNames(extractors)).
		Msg("listening")

	if err := server.ListenAndServe(c.Addr); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}

// buildExtractors creates one engine per loaded rule set plus the
// default profile with no rules.
func (c *ServeCmd) buildExtractors(deps *Dependencies) (map[string]dragparser.Extractor, error) {
	registry, err := loadRuleSets(c.Rules)
	if err != nil {
		return nil, err
	}

	converter := htmltomarkdown.NewConverter()
	extractors := make(map[string]dragparser.Extractor)

	base, err := engine.New(dragparser.DefaultConfig(), nil, engine.WithConverter(converter))
	if err != nil {
		return nil, err
	}
	extractors[""] = base

	for _, name := range registry.List() {
		e, err := engine.New(dragparser.DefaultConfig(), registry.Get(name),
			engine.WithConverter(converter))
		if err != nil {
			return nil, fmt.Errorf("profile %q: %s", name, dragparser.ErrorMessage(err))
		}
		extractors[name] = e
	}

	return extractors, nil
}

func profileNames(extractors map[string]dragparser.Extractor) []string {
	names := make([]string, 0, len(extractors))
	for name := range extractors {
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
