// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package config

// DefaultPolicies returns the built-in entity policies for a content
// API: taxonomy, posts, comments, subscribers, and site settings. A
// config file may replace them wholesale; they are not merged.
func DefaultPolicies() []PolicyConfig {
	return []PolicyConfig{
		{
			EntityType:      "category",
			RequiredRoles:   []string{"EDITOR", "ADMIN"},
			AuditOperations: []string{"create", "update", "delete"},
			FieldPermissions: map[string]string{
				"is_active": "admin_only",
			},
		},
		{
			EntityType:      "tag",
			RequiredRoles:   []string{"EDITOR", "ADMIN"},
			AuditOperations: []string{"create", "update", "delete"},
			FieldPermissions: map[string]string{
				"is_active": "admin_only",
			},
		},
		{
			EntityType:      "post",
			RequiredRoles:   []string{"AUTHOR", "EDITOR", "ADMIN"},
			AuditOperations: []string{"create", "update", "delete"},
			FieldPermissions: map[string]string{
				"status":      "owner_or_admin",
				"is_featured": "admin_only",
				"view_count":  "read_only",
			},
		},
		{
			EntityType:      "comment",
			RequiredRoles:   []string{"READER", "AUTHOR", "EDITOR", "ADMIN"},
			AuditOperations: []string{"create", "update", "delete"},
			FieldPermissions: map[string]string{
				"is_approved": "admin_only",
				"is_flagged":  "admin_only",
			},
		},
		{
			EntityType:      "subscriber",
			RequiredRoles:   []string{"ADMIN", "EDITOR"},
			AuditOperations: []string{"create", "update", "delete"},
			FieldPermissions: map[string]string{
				"email":       "admin_only",
				"preferences": "owner_or_admin",
			},
			SensitiveFields: []string{"email"},
		},
		{
			EntityType:      "site_settings",
			RequiredRoles:   []string{"ADMIN"},
			AuditOperations: []string{"update"},
			FieldPermissions: map[string]string{
				"posts_per_page":    "admin_only",
				"moderate_comments": "admin_only",
				"seo_settings":      "admin_only",
			},
		},
	}
}
