// Package models defines the domain types shared by the scanner components:
// media sources and their scan paths, file records observed on either side,
// change records produced by reconciliation and the events producers emit.
package models
