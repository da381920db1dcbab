// Package config loads the todoui configuration.
//
// Configuration comes from a YAML file (todoui.yaml in the working
// directory unless a path is given), overridden by TODOUI_* environment
// variables, on top of built-in defaults.
//
// # Configuration File Structure
//
//	server:
//	  addr: ":8080"
//	  pages_dir: "./pages"
//	  origin: "http://localhost:8080"
//	logger:
//	  level: info
//	  format: console
//	metrics:
//	  enabled: true
//	  path: /metrics
//	  namespace: todoui
//	tracing:
//	  enabled: false
//	  tracer_name: todoui
//	engine:
//	  disable_animations: false
//	  timing:
//	    toast_display: 4s
//	    busy_timeout: 5s
//	  messages:
//	    form:
//	      required: "이 필드는 필수입니다."
//
// Nested keys map to environment variables with dots replaced by
// underscores: TODOUI_SERVER_ADDR, TODOUI_ENGINE_TIMING_BUSY_TIMEOUT.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	page := todoui.Load(doc, loop, cfg.Engine.Todoui(logger))
package config
