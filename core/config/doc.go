// Package config fills structs from environment variables with
// caarlos0/env. A .env file in the working directory is read once, before
// the first load, and never overrides variables that are already set.
//
//	var cfg app.Config
//	config.MustLoad(&cfg)
//
//	var pgCfg pg.Config
//	if err := config.Load(&pgCfg); err != nil {
//		return err
//	}
//
// Results are cached per struct type: the second Load of the same type
// copies the first result without touching the environment again. Tests
// that change the environment call Reset.
package config
