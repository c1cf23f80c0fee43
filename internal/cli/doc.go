// Package cli holds the cobra commands of the harvester binary.
package cli
