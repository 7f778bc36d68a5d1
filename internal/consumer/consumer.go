package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"

	"detectdemo/internal/config"
	"detectdemo/internal/dao"
	"detectdemo/pkg/log"
)

// EventHandler processes one decoded session event. Returning an error
// requeues the message.
type EventHandler func(ev *dao.SessionEvent) error

type Consumer struct {
	conf     config.NSQConfig
	ctx      context.Context
	cancel   context.CancelFunc
	consumer *nsq.Consumer
	wg       sync.WaitGroup
	logger   *logrus.Entry
	handler  EventHandler
}

func NewConsumer(conf config.NSQConfig, handler EventHandler) (*Consumer, error) {
	ctx, cancel := context.WithCancel(context.Background())

	logger := log.GetLogger(ctx).WithField("component", "consumer")

	nsqConf := nsq.NewConfig()
	nsqConf.MsgTimeout = time.Minute
	nsqConf.MaxInFlight = 10
	nsqConf.MaxAttempts = 2

	consumer, err := nsq.NewConsumer(conf.Topic, conf.Channel, nsqConf)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create NSQ consumer: %w", err)
	}

	c := &Consumer{
		conf:     conf,
		ctx:      ctx,
		cancel:   cancel,
		consumer: consumer,
		logger:   logger,
		handler:  handler,
	}

	consumer.AddHandler(c)

	return c, nil
}

func DecodeEvent(body []byte) (*dao.SessionEvent, error) {
	ev := &dao.SessionEvent{}
	if err := json.Unmarshal(body, ev); err != nil {
		return nil, fmt.Errorf("unmarshal session event: %w", err)
	}
	if ev.Record.Uuid == "" {
		return nil, fmt.Errorf("session event without session id")
	}
	return ev, nil
}

func (c *Consumer) HandleMessage(message *nsq.Message) error {
	c.logger.Debugf("Received NSQ message: %s", string(message.Body))

	ev, err := DecodeEvent(message.Body)
	if err != nil {
		// a malformed body will not get better on retry
		c.logger.WithError(err).Error("Drop bad NSQ message")
		return nil
	}
	if ev.Event != dao.EventSessionFinished {
		c.logger.Debugf("Ignore event %s", ev.Event)
		return nil
	}

	c.logger.WithFields(logrus.Fields{
		"sessionId":  ev.Record.Uuid,
		"kind":       ev.Record.Kind,
		"state":      ev.Record.State,
		"frames":     ev.Record.Frames,
		"detections": ev.Record.Totals.Total(),
		"reportPath": ev.ReportPath,
	}).Info("Session finished")

	if c.handler == nil {
		return nil
	}
	if err := c.handler(ev); err != nil {
		c.logger.WithError(err).Errorf("Failed to handle event for session %s", ev.Record.Uuid)
		return err
	}
	return nil
}

func (c *Consumer) Start() error {
	c.logger.Info("Starting NSQ consumer...")

	err := c.consumer.ConnectToNSQD(c.conf.NSQDAddr)
	if err != nil {
		return fmt.Errorf("failed to connect to NSQ: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		c.consumer.Stop()
		<-c.consumer.StopChan
	}()

	return nil
}

func (c *Consumer) Stop() {
	c.cancel()
	c.wg.Wait()
}
