// Package scrapesense extracts structured fields from rendered web pages
// using per-target CSS selectors, detects selectors that stopped matching,
// and repairs them with selectors suggested by a language model.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, gemini/).
package scrapesense
