// Package logger provides a structured logging interface for the follower crawler
// and ranking engine.
//
// It wraps zerolog behind a small Logger interface so that components can be
// handed a TestLogger or a no-op logger in tests.
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File:  "/var/log/followrank.log",
//	}
//	if err := logger.Initialize(cfg); err != nil {
//	    return err
//	}
//
//	log := logger.GetLogger().WithField("component", "crawler")
//	log.WithField("account_id", id).Info("Followers saved")
//	log.WithError(err).Error("Fetch failed")
//
// Structured events:
//
//	log.InfoWithFields("Iteration complete", map[string]interface{}{
//	    "iteration":  12,
//	    "similarity": 0.99991,
//	})
package logger
