package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/chosen1st/sqoop/bean"
	"github.com/chosen1st/sqoop/config"
	"github.com/chosen1st/sqoop/model"
	"github.com/chosen1st/sqoop/store"
	"github.com/chosen1st/sqoop/store/memory"
	redisstore "github.com/chosen1st/sqoop/store/redis"
	"github.com/chosen1st/sqoop/transfer/rabbitmq"
)

var errUsage = errors.New("usage")

// app holds what the commands share. The store and transport are opened on
// first use.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	out     io.Writer
	schemas bean.SchemaSource

	store     store.JobStore
	transport *rabbitmq.Transport
}

func newApp(cfg *config.Config, logger *slog.Logger, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, logger: logger, out: out}

	reg, err := cfg.NewRegistry()
	if err != nil {
		return nil, err
	}
	if reg != nil {
		a.schemas = reg
	}
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Failed to close store", "error", err)
		}
	}
	if a.transport != nil {
		if err := a.transport.Close(); err != nil {
			a.logger.Warn("Failed to close transport", "error", err)
		}
	}
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "inspect":
		return a.inspect(args)
	case "import":
		return a.importJobs(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "publish":
		return a.publish(ctx, args)
	case "consume":
		return a.consume(ctx, args)
	default:
		return errUsage
	}
}

func (a *app) serializer(includeSensitive bool) *bean.Serializer {
	s := bean.NewSerializer()
	s.SetIncludeSensitive(includeSensitive)
	if a.schemas != nil {
		s.SetSchemaSource(a.schemas)
	}
	return s
}

func (a *app) readEnvelope(path string) ([]model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.serializer(false).Deserialize(data)
}

func (a *app) openStore(ctx context.Context) (store.JobStore, error) {
	if a.store != nil {
		return a.store, nil
	}

	var s store.JobStore
	switch a.cfg.Store.Type {
	case "memory":
		s = memory.NewStore(memory.DefaultOptions())
	case "redis":
		rs := redisstore.NewStore(a.cfg.RedisOptions(), a.schemas)
		rs.SetLogger(a.logger)
		s = rs
	default:
		return nil, fmt.Errorf("unknown store type %q", a.cfg.Store.Type)
	}

	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	a.logger.Debug("Connected to store", "type", s.Type())
	a.store = s
	return s, nil
}

func (a *app) openTransport(ctx context.Context) (*rabbitmq.Transport, error) {
	if a.transport != nil {
		return a.transport, nil
	}

	t := rabbitmq.NewTransport(a.cfg.RabbitMQOptions(), a.schemas)
	t.SetLogger(a.logger)
	if err := t.Connect(ctx); err != nil {
		return nil, err
	}
	a.transport = t
	return t, nil
}

func (a *app) queue(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.RabbitMQOptions().Queue
}

func (a *app) inspect(args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	jobs, err := a.readEnvelope(args[0])
	if err != nil {
		return err
	}
	for _, j := range jobs {
		a.printJob(j)
	}
	return nil
}

func (a *app) printJob(j model.Job) {
	fmt.Fprintf(a.out, "%d\t%s\t%s (%s) -> %s (%s)\tenabled=%t\n",
		j.PersistenceID, j.Name,
		j.FromLinkName(), j.FromConnectorName(),
		j.ToLinkName(), j.ToConnectorName(),
		j.Enabled)
}

func (a *app) importJobs(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("import", flag.ContinueOnError)
	keepIDs := flags.Bool("keep-ids", false, "save jobs under the ids found in the envelope")
	if err := flags.Parse(args); err != nil || flags.NArg() != 1 {
		return errUsage
	}

	jobs, err := a.readEnvelope(flags.Arg(0))
	if err != nil {
		return err
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	for _, j := range jobs {
		if !*keepIDs {
			j.PersistenceID = model.PersistenceIDUnassigned
		}
		saved, err := s.Save(ctx, j)
		if err != nil {
			return fmt.Errorf("import %s: %w", j.Name, err)
		}
		a.printJob(saved)
	}
	a.logger.Info("Imported jobs", "count", len(jobs), "store", s.Type())
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	sensitive := flags.Bool("sensitive", a.cfg.Transcoder.IncludeSensitive, "include sensitive values")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	ids := make([]int64, 0, flags.NArg())
	for _, arg := range flags.Args() {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job id %q", arg)
		}
		ids = append(ids, id)
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	var jobs []model.Job
	if len(ids) == 0 {
		if jobs, err = s.List(ctx); err != nil {
			return err
		}
	}
	for _, id := range ids {
		j, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		jobs = append(jobs, j)
	}

	data, err := a.serializer(*sensitive).Serialize(jobs...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

func (a *app) publish(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}

	jobs, err := a.readEnvelope(args[0])
	if err != nil {
		return err
	}

	t, err := a.openTransport(ctx)
	if err != nil {
		return err
	}

	queue := a.queue(args[1:])
	id, err := t.Publish(ctx, queue, a.cfg.Transcoder.IncludeSensitive, jobs...)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "published %d jobs to %s as %s\n", len(jobs), queue, id)
	return nil
}

// consume saves the jobs of every envelope until ctx is done. An envelope is
// acknowledged once all of its jobs are saved.
func (a *app) consume(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errUsage
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	t, err := a.openTransport(ctx)
	if err != nil {
		return err
	}

	deliveries := make(chan rabbitmq.Delivery)
	errc := make(chan error, 1)
	go func() {
		errc <- t.Consume(ctx, a.queue(args), deliveries)
	}()

	for {
		select {
		case err := <-errc:
			return err
		case d := <-deliveries:
			a.saveDelivery(ctx, s, d)
		}
	}
}

func (a *app) saveDelivery(ctx context.Context, s store.JobStore, d rabbitmq.Delivery) {
	for _, j := range d.Jobs {
		j.PersistenceID = model.PersistenceIDUnassigned
		saved, err := s.Save(ctx, j)
		if err != nil {
			a.logger.Error("Failed to save consumed job", "message_id", d.MessageID, "job", j.Name, "error", err)
			if nackErr := d.Nack(false); nackErr != nil {
				a.logger.Error("Failed to nack envelope", "message_id", d.MessageID, "error", nackErr)
			}
			return
		}
		a.printJob(saved)
	}

	if err := d.Ack(); err != nil {
		a.logger.Error("Failed to ack envelope", "message_id", d.MessageID, "error", err)
	}
}
