// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

// Package config loads layered configuration: built-in defaults, then an
// optional YAML file, then INKGATE_* environment variables. The loaded
// Config is immutable after startup; the policy registry it builds is
// swapped atomically on reload.
package config

import (
	"fmt"
	"time"

	"github.com/inkgate/inkgate/internal/authz"
	"github.com/inkgate/inkgate/internal/models"
	"github.com/inkgate/inkgate/internal/validation"
)

// Config is the process configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server" json:"server"`
	Logging  LoggingConfig  `koanf:"logging" json:"logging"`
	Audit    AuditConfig    `koanf:"audit" json:"audit"`
	Security SecurityConfig `koanf:"security" json:"security"`
	Policies []PolicyConfig `koanf:"policies" json:"policies"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host" json:"host" validate:"required"`
	Port            int           `koanf:"port" json:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout" json:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins" json:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" json:"rate_limit_reqs" validate:"min=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" json:"rate_limit_window"`
}

// LoggingConfig holds diagnostic log settings.
type LoggingConfig struct {
	Level  string `koanf:"level" json:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" json:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller" json:"caller"`
}

// AuditConfig holds audit trail settings.
type AuditConfig struct {
	Enabled         bool          `koanf:"enabled" json:"enabled"`
	RecordDenials   bool          `koanf:"record_denials" json:"record_denials"`
	Store           string        `koanf:"store" json:"store" validate:"oneof=memory duckdb"`
	DatabasePath    string        `koanf:"database_path" json:"database_path"`
	BufferSize      int           `koanf:"buffer_size" json:"buffer_size" validate:"min=1"`
	RetentionDays   int           `koanf:"retention_days" json:"retention_days" validate:"min=1"`
	CleanupInterval time.Duration `koanf:"cleanup_interval" json:"cleanup_interval"`

	// WebhookURL, when set, forwards every event to an external
	// collector behind a circuit breaker.
	WebhookURL string `koanf:"webhook_url" json:"webhook_url" validate:"omitempty,url"`

	// PublishTopic, when set, forwards every event to the message bus.
	PublishTopic string `koanf:"publish_topic" json:"publish_topic"`
}

// SecurityConfig holds input hygiene settings.
type SecurityConfig struct {
	// ExtraDenyPatterns extends the sanitizer denylist.
	ExtraDenyPatterns []string `koanf:"extra_deny_patterns" json:"extra_deny_patterns"`
}

// PolicyConfig is the file form of one entity-type security policy.
type PolicyConfig struct {
	EntityType       string            `koanf:"entity_type" json:"entity_type" validate:"required,entity_type"`
	RequiredRoles    []string          `koanf:"required_roles" json:"required_roles"`
	AuditOperations  []string          `koanf:"audit_operations" json:"audit_operations" validate:"dive,oneof=create update delete"`
	FieldPermissions map[string]string `koanf:"field_permissions" json:"field_permissions"`
	SensitiveFields  []string          `koanf:"sensitive_fields" json:"sensitive_fields"`
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Audit.Store == "duckdb" && c.Audit.DatabasePath == "" {
		return fmt.Errorf("audit.database_path is required when audit.store is duckdb")
	}
	seen := make(map[string]struct{}, len(c.Policies))
	for _, policy := range c.Policies {
		if _, dup := seen[policy.EntityType]; dup {
			return fmt.Errorf("duplicate policy for entity type %q", policy.EntityType)
		}
		seen[policy.EntityType] = struct{}{}
	}
	return nil
}

// BuildRegistry constructs the policy registry from the configured
// policies. Invalid roles, levels, or operations surface as *ConfigError
// from the registry, naming the offending entity type.
func (c *Config) BuildRegistry() (*authz.Registry, error) {
	registry := authz.NewRegistry()

	for _, policy := range c.Policies {
		roles := make([]models.Role, len(policy.RequiredRoles))
		for i, role := range policy.RequiredRoles {
			roles[i] = models.Role(role)
		}
		ops := make([]models.Operation, len(policy.AuditOperations))
		for i, op := range policy.AuditOperations {
			ops[i] = models.Operation(op)
		}
		fields := make(map[string]authz.FieldAccessLevel, len(policy.FieldPermissions))
		for field, level := range policy.FieldPermissions {
			fields[field] = authz.FieldAccessLevel(level)
		}

		err := registry.Register(policy.EntityType, authz.SecurityConfig{
			RequiredRoles:    roles,
			AuditOperations:  ops,
			FieldPermissions: fields,
			SensitiveFields:  policy.SensitiveFields,
		})
		if err != nil {
			return nil, err
		}
	}

	return registry, nil
}
