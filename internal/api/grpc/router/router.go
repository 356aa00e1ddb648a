package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dtroode/gophfriends-server/internal/api/grpc/friendsv1"
	"github.com/dtroode/gophfriends-server/internal/api/grpc/handler"
	"github.com/dtroode/gophfriends-server/internal/api/grpc/middleware"
	"github.com/dtroode/gophfriends-server/internal/logger"
	"github.com/dtroode/gophfriends-server/internal/model"
)

// Router builds the gRPC server: interceptors, the Friends service, health
// checks and reflection.
type Router struct {
	friendService         handler.FriendService
	recommendationService handler.RecommendationService
	tokenService          middleware.TokenService
	contextManager        model.ContextManager
	logger                *logger.Logger
}

func New(
	friendService handler.FriendService,
	recommendationService handler.RecommendationService,
	tokenService middleware.TokenService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		friendService:         friendService,
		recommendationService: recommendationService,
		tokenService:          tokenService,
		contextManager:        contextManager,
		logger:                logger,
	}
}

// requiresAuth matches every call except health checks and reflection.
func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	switch c.Service {
	case healthpb.Health_ServiceDesc.ServiceName,
		"grpc.reflection.v1.ServerReflection",
		"grpc.reflection.v1alpha.ServerReflection":
		return false
	default:
		return true
	}
}

// Register returns a gRPC server with every service registered.
func (r *Router) Register(opts ...grpc.ServerOption) *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	recovery := middleware.NewRecovery(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(),
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
	)

	s := grpc.NewServer(opts...)
	r.registerFriendRoutes(s)
	r.registerHealth(s)
	reflection.Register(s)

	return s
}

func (r *Router) registerFriendRoutes(server *grpc.Server) {
	friendsHandler := handler.NewFriends(r.friendService, r.recommendationService, r.contextManager, r.logger)
	friendsv1.RegisterFriendsServer(server, friendsHandler)
}

func (r *Router) registerHealth(server *grpc.Server) {
	hs := health.NewServer()
	hs.SetServingStatus(friendsv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, hs)
}
