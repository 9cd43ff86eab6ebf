// Package testsupport holds fixtures shared by package tests: temp-dir
// configurations, file writers and a scripted text generator.
package testsupport
