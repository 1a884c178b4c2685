package GetMessages

import "discord-channel-summariser/Models"

type Partition = Models.Partition

// PartitionMessages routes each message to the main bucket or to its thread's
// bucket, keeping the relative order within every bucket.
func PartitionMessages(messages []Message) Partition {
	partition := Partition{
		Main:    []Message{},
		Threads: make(map[string][]Message),
	}

	for _, message := range messages {
		if message.ThreadID == "" {
			partition.Main = append(partition.Main, message)
			continue
		}
		if _, seen := partition.Threads[message.ThreadID]; !seen {
			partition.ThreadOrder = append(partition.ThreadOrder, message.ThreadID)
		}
		partition.Threads[message.ThreadID] = append(partition.Threads[message.ThreadID], message)
	}

	return partition
}
