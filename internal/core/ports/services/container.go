package services

// ServiceContainer holds all the services handed to the HTTP layer and the
// background jobs.
type ServiceContainer struct {
	Account     AccountSvcFacade
	Client      ClientReaderSvc
	Transaction TransactionSvcFacade
	User        UserSvcFacade
	Token       TokenSvcFacade
	Notifier    NotificationSink
}
