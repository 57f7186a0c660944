package services

import (
	portsrepo "github.com/vaultis/bankledger/internal/core/ports/repositories"
	portssvc "github.com/vaultis/bankledger/internal/core/ports/services"
)

// NewServiceContainer creates a service container with properly initialized
// dependencies.
func NewServiceContainer(ledgerRepo portsrepo.LedgerRepositoryFacade) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:  NewAccountService(ledgerRepo),
		Transfer: NewTransferService(ledgerRepo),
	}
}
