// Package cli implements the sheetctl command-line interface.
//
// The cli package provides the Cobra-based CLI for spreadsheet
// maintenance: granting writer access, listing worksheets and deleting
// worksheets. It reuses the bot's settings file and the gsheet client.
package cli
