package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's login session
func (r *CacheKeyStruct) StudentSessionKey(studentID string) string {
	return fmt.Sprintf("login:%s", studentID)
}

// StudentActiveAttemptKey returns the cache key marking a student's live attempt
func (r *CacheKeyStruct) StudentActiveAttemptKey(studentID string) string {
	return fmt.Sprintf("student:%s:active_attempt", studentID)
}

// AttemptStartKey returns the cache key for an attempt's start timestamp
func (r *CacheKeyStruct) AttemptStartKey(scheduleID, studentID string) string {
	return fmt.Sprintf("student:%s:schedule:%s:attempt_start", studentID, scheduleID)
}

// AttemptQuestionsKey returns the cache key for an attempt's generated question set
func (r *CacheKeyStruct) AttemptQuestionsKey(scheduleID, studentID string) string {
	return fmt.Sprintf("student:%s:schedule:%s:questions", studentID, scheduleID)
}

// SchedulePayloadKey returns the cache key for a schedule's lobby payload
func (r *CacheKeyStruct) SchedulePayloadKey(scheduleID string) string {
	return fmt.Sprintf("schedule:%s:payload", scheduleID)
}

// ScheduleMonitorChannel returns the Redis PubSub channel for live attempt monitoring
func (r *CacheKeyStruct) ScheduleMonitorChannel(scheduleID string) string {
	return fmt.Sprintf("schedule:%s:monitor", scheduleID)
}

var CacheKey = NewCacheKeyStruct()
