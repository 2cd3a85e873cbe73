package repositories

// RepositoryProvider aggregates the repositories the service layer needs so
// wiring stays in one place.
type RepositoryProvider struct {
	AccountRepo     AccountRepository
	ClientRepo      ClientRepository
	TransactionRepo TransactionRepository
	UserRepo        UserRepository
}
