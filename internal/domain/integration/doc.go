// Package integration contains the accounting integration bounded context.
// It translates a confirmed quotation into calls against the external
// accounting system: create a customer, resolve inventory keys, create a sales order.
//
// Design Pattern: Ports & Adapters
//   - AccountingGateway (the port) is defined here in the domain layer
//   - The HTTP adapter lives in infrastructure/accounting
package integration
