// Package magetasks holds the build, test and lint tasks behind lintfix's
// magefile.
package magetasks
