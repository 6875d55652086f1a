package kafka

import "time"

const (
	TopicClaimCreateRequest  = "claims.create.req"
	TopicUserCreateRequest   = "users.create.req"
	TopicPolicyCreateRequest = "policies.create.req"
	TopicReplyPrefix         = "records.reply."
	TopicDLQSuffix           = ".dlq"

	RequestTimeout = 3 * time.Second

	ErrorHeaderKey = "x-error"
)

// RequestTopics are the topics the consumer group reads.
var RequestTopics = []string{
	TopicClaimCreateRequest,
	TopicUserCreateRequest,
	TopicPolicyCreateRequest,
}

func ReplyTopic(instanceID string) string {
	return TopicReplyPrefix + instanceID
}
