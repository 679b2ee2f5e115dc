// Package models defines domain entities shared across the smart playlist service.
//
// The package contains two categories of types:
//
// 1. Catalog Data Transfer Objects: Lightweight structs representing remote catalog data
//   - [Track] : Song metadata with artists, album, release date, duration, popularity, and images
//   - [Image] : Image descriptor whose dimensions may be missing until enriched
//   - [Playlist] / [PlaylistDetail] : Playlist metadata from the catalog
//
// 2. Local Entities: Database-backed records
//   - [Run] : One generation run recorded for the history log
//
// All catalog DTOs are request-scoped: created when a generation or preview
// request retrieves them and discarded when the request completes.
package models
