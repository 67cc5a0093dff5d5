package operator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-engine/internal/operator/actions"
	"github.com/carson-networks/budget-engine/internal/storage"
)

// Operator is the worker that processes items from its queue.
type Operator struct {
	id      int
	storage storage.Storage
	queue   chan ActionItem
	log     *logrus.Logger
}

func NewOperator(id int, s storage.Storage, queue chan ActionItem, log *logrus.Logger) *Operator {
	return &Operator{
		id:      id,
		storage: s,
		queue:   queue,
		log:     log,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		o.processItem(item)
	}
}

func (o *Operator) processItem(item ActionItem) {
	if err := item.ctx.Err(); err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}

	writer, err := o.storage.Write(item.ctx)
	if err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}

	err = o.perform(item, writer)
	if err != nil {
		if rbErr := writer.Rollback(item.ctx); rbErr != nil {
			o.log.WithFields(logrus.Fields{
				"operator": o.id,
				"action":   fmt.Sprintf("%T", item.action),
			}).WithError(rbErr).Error("Operator.Rollback.Failed")
		}
		item.response <- ActionItemResponse{err: err}
		return
	}

	if err = writer.Commit(item.ctx); err != nil {
		item.response <- ActionItemResponse{err: err}
		return
	}

	item.response <- ActionItemResponse{}
}

// perform turns a panicking action into an error so the transaction is
// rolled back and the worker survives.
func (o *Operator) perform(item ActionItem, writer *storage.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action %T panicked: %v", item.action, r)
		}
	}()
	return item.action.Perform(item.ctx, writer)
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
