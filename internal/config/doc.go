// Package config handles configuration loading for chat-server.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${CHAT_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Database:
//
//	database:
//	  path: "/var/lib/chat-server/chat.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${CHAT_JWT_SECRET}"  # required
//	  token_ttl: "720h"                 # lifetime of useradd-minted tokens
//
// Chat tuning:
//
//	chat:
//	  page_size: 10          # messages per pagination page
//	  subscriber_buffer: 16  # queued events per realtime subscriber
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Load("/etc/chat-server/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
