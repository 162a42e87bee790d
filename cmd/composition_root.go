package cmd

import (
	"packorder/internal/adapters/out/postgres"
	"packorder/internal/core/application/usecases/commands"
	"packorder/internal/core/application/usecases/queries"
	"packorder/internal/core/domain/model/order"
	"packorder/internal/core/domain/services"

	"gorm.io/gorm"
)

// CompositionRoot wires the domain services, repositories, and use case
// handlers together. The transition table, executor, and detector are built
// once and shared by every handler.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	executor *services.TransitionExecutor
	detector *services.EdgeCaseDetector
	policy   commands.ApprovalPolicy
}

func NewCompositionRoot(config Config, gormDB *gorm.DB) (CompositionRoot, error) {
	table := order.NewTransitionTable()

	executor, err := services.NewTransitionExecutor(table)
	if err != nil {
		return CompositionRoot{}, err
	}

	detector, err := services.NewEdgeCaseDetector(table, config.StuckAfter)
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		executor:   executor,
		detector:   detector,
		policy: commands.ApprovalPolicy{
			Approvers: config.ApprovalApprovers,
			TTL:       config.ApprovalTTL,
		},
	}, nil
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateExecuteTransitionCommandHandler() (*commands.ExecuteTransitionCommandHandler, error) {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewExecuteTransitionCommandHandler(f, c.executor, c.policy)
}

func (c *CompositionRoot) CreateRollbackOrderCommandHandler() (*commands.RollbackOrderCommandHandler, error) {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewRollbackOrderCommandHandler(f, c.executor)
}

func (c *CompositionRoot) CreateDecideApprovalCommandHandler() *commands.DecideApprovalCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewDecideApprovalCommandHandler(f)
}

func (c *CompositionRoot) CreateRunRecoveryCommandHandler() (*commands.RunRecoveryCommandHandler, error) {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewRunRecoveryCommandHandler(f, c.detector)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPendingApprovalsQueryHandler() queries.GetPendingApprovalsQueryHandler {
	return queries.NewGetPendingApprovalsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetStateHistoryQueryHandler() queries.GetStateHistoryQueryHandler {
	return queries.NewGetStateHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetStateTimelineQueryHandler() queries.GetStateTimelineQueryHandler {
	return queries.NewGetStateTimelineQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetStateChangeReportQueryHandler() queries.GetStateChangeReportQueryHandler {
	return queries.NewGetStateChangeReportQueryHandler(c.gormDB)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
