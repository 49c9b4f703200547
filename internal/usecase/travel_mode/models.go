package travel_mode

// ConfirmResult итог одного прохода автоподтверждения
type ConfirmResult struct {
	Confirmed []string
	Skipped   int
	Failed    int
}
