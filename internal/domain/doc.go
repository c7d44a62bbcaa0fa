// Package domain contains the core data structures shared by the ingestion,
// normalization, analytics and query layers of the dashboard.
package domain
