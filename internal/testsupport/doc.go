// Package testsupport provides config and store fixtures shared by package tests.
package testsupport
