// Package infra contains technical adapters: the SharePoint and file
// feeds, SQLite persistence, the MQTT board client, Sentry and the metrics
// exporters. These packages depend only on interfaces defined in core.
package infra
