// Package entity defines the decoded node record and its tag map.
package entity
