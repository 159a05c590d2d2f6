// Package fakes provides scripted test doubles for driven ports.
package fakes
