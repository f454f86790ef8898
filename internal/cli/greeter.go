package cli

import (
	"context"
	"strconv"

	"gactor/pkg/xactor"
	"gactor/pkg/xmetrics"
	"gactor/pkg/xruntime"

	"github.com/pkg/errors"
)

type Greet struct {
	Name string
}

var errEmptyName = errors.New("empty name")

type greeter struct {
	*xactor.BaseActor
}

func (g *greeter) greet(ctx context.Context, req Greet, sender xactor.Actor) (string, error) {
	if req.Name == "" {
		return "", errors.WithStack(errEmptyName)
	}
	return "hello " + req.Name, nil
}

// greeter worker构造器, 名字按创建顺序编号
func newGreeter(name string, inboxSize int, metrics xmetrics.ActorMetrics) xactor.Constructor {
	var seq int
	return func(env xruntime.Environment) (xactor.Actor, error) {
		g := &greeter{}
		base, err := xactor.NewActor(env, xactor.ActorArgs{
			Name:      name + "-" + strconv.Itoa(seq),
			InboxSize: inboxSize,
			Handlers:  []xactor.HandlerArgs{xactor.Handle(g.greet)},
			Unhandled: xactor.UnhandledFail,
			Metrics:   metrics,
		})
		if err != nil {
			return nil, err
		}
		seq++
		g.BaseActor = base
		return g, nil
	}
}
