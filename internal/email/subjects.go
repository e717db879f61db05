package email

const (
	subjectQuoteSentFmt      = "Your freight quote %s"
	subjectShipmentStatusFmt = "Shipment %s is now %s"
)
