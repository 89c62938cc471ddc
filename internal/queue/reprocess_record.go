package queue

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/shengteng9/float-note-api/internal/records"
)

const topicReprocessRecord = "reprocess_record"

// ProduceReprocessRecord 推送记录重处理任务
func ProduceReprocessRecord(recordID uuid.UUID) {
	GlobalQueue.Produce(topicReprocessRecord, Payload{RecordID: recordID})
}

// ConsumeReprocessRecord 启动 n 个并发消费者重跑记录管线
func ConsumeReprocessRecord(recordService *records.RecordService, n int) {
	GlobalQueue.RegisterConsumer(topicReprocessRecord, func(msg Message) {
		payload, ok := msg.Data.(Payload)
		if !ok {
			log.Println("Invalid reprocess_record payload, skipping")
			return
		}

		if err := recordService.Reprocess(context.Background(), payload.RecordID); err != nil {
			// 失败的记录保持未处理状态，等待下一次手动触发
			log.Println("Reprocess record error:", payload.RecordID, err)
		}
	}, n)
}
