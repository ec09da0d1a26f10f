// Package tui renders the terminal status view of the sync queue: connection
// state, pending operations, recent terminal failures and this month's
// totals of the local record.
package tui
