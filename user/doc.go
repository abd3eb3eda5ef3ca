// Package user provides the in-memory user registry for Color Clash.
//
// Users register with a unique username (3 to 20 characters after
// trimming, case-insensitive uniqueness) and receive a generated ID.
// Login looks an existing user up by username and marks them online.
// The Registry is safe for concurrent use.
package user
