package config

type WorkerKeyStruct struct {
	PersistViolationsQueue string
	PersistResultsQueue    string
	GuardianNotifyQueue    string
}

var WorkerKey = &WorkerKeyStruct{
	PersistViolationsQueue: "persist_violations_queue",
	PersistResultsQueue:    "persist_results_queue",
	GuardianNotifyQueue:    "guardian_notify_queue",
}
