// Package ir provides the canonical data model shared by every tgis package.
//
// This package contains type definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps the model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Extents are immutable once constructed; end never precedes start
//   - A Point is either absolute (calendar time, UTC) or relative (a count
//     of a relative unit); the two kinds never compare equal
//   - Object payloads are opaque and never dereferenced or encoded
//   - Granule member lists are ordered by dataset argument order, and a
//     dataset that contributes nothing is present with an empty list
//   - All JSON tags use snake_case
package ir
