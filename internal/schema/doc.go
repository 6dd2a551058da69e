// Package schema holds the four destination tables of the movie dataset
// and renders their DDL for each supported store dialect.
//
// The catalogue is fixed. Tables are returned in load order: the primary
// movies_metadata table first, then its dependents links, keywords and credits.
package schema
