package sitekit

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// chat.js, admin.js, analytics.js
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
