// Package preflight runs the environment checks behind the doctor command.
package preflight
