package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emrealmaoglu/trailium/internal/middleware"
)

// Credential endpoints get a tighter per-IP limit on top of the scoped throttle.
const (
	credentialRateLimit  = 20
	credentialRateWindow = time.Minute
	prioritiesCacheTTL   = 5 * time.Minute
)

// RegisterRoutes mounts the /api tree on r. Health, schema and the token
// endpoints ignore the Authorization header. Everywhere else bearer tokens are
// resolved up front so throttling can tell users from anonymous clients.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	throttle := middleware.ScopedRateLimitMiddleware(h.config.RateLimit)
	credentialLimit := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Limit:  credentialRateLimit,
		Window: credentialRateWindow,
	})

	public := r.Group("/api", throttle)
	{
		public.GET("/health", h.Health)
		public.GET("/schema", h.Schema)
		public.POST("/auth/login", credentialLimit, h.Login)
		public.POST("/auth/register", credentialLimit, h.Register)
		public.POST("/auth/refresh", h.Refresh)
	}

	api := r.Group("/api", h.OptionalAuthMiddleware(), throttle)
	requireAuth := h.AuthMiddleware()

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/change-password", requireAuth, h.ChangePassword)
	}

	api.GET("/users", h.ListUsers)
	users := api.Group("/users", requireAuth)
	{
		users.GET("/me", h.GetMe)
		users.PATCH("/me", h.UpdateMe)
		users.PUT("/me", h.UpdateMe)
		users.DELETE("/me", h.DeleteMe)
		users.GET("/:id", h.GetUser)
		users.GET("/:id/profile", h.GetUserProfile)
		users.PUT("/:id", h.UpdateUser)
		users.PATCH("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	posts := api.Group("/posts", requireAuth)
	{
		posts.GET("", h.ListPosts)
		posts.POST("", h.CreatePost)
		posts.GET("/:id", h.GetPost)
		posts.PUT("/:id", h.UpdatePost)
		posts.PATCH("/:id", h.UpdatePost)
		posts.DELETE("/:id", h.DeletePost)
		posts.POST("/:id/like", h.LikePost)
		posts.DELETE("/:id/like", h.UnlikePost)
		posts.GET("/:id/comments", h.ListComments)
		posts.POST("/:id/comments", h.CreateComment)
	}
	api.GET("/feed/posts", requireAuth, h.GetFeed)
	api.GET("/my-posts", requireAuth, h.GetMyPosts)

	albums := api.Group("/albums", requireAuth)
	{
		albums.GET("", h.ListAlbums)
		albums.POST("", h.CreateAlbum)
		albums.GET("/:id", h.GetAlbum)
		albums.PUT("/:id", h.UpdateAlbum)
		albums.PATCH("/:id", h.UpdateAlbum)
		albums.DELETE("/:id", h.DeleteAlbum)
		albums.GET("/:id/photos", h.ListPhotos)
		albums.POST("/:id/photos", h.CreatePhoto)
	}

	follows := api.Group("/follows", requireAuth)
	{
		follows.GET("", h.ListFollows)
		follows.GET("/followers", h.GetFollowers)
		follows.GET("/following", h.GetFollowing)
		follows.GET("/requests", h.GetFollowRequests)
		follows.POST("/users/:id/follow", h.FollowUser)
		follows.POST("/users/:id/unfollow", h.UnfollowUser)
		follows.POST("/users/:id/accept", h.AcceptFollowRequest)
		follows.POST("/users/:id/reject", h.RejectFollowRequest)
		follows.GET("/users/:id/status", h.GetFollowStatus)
	}

	lists := api.Group("/todo-lists", requireAuth)
	{
		lists.GET("", h.ListTodoLists)
		lists.POST("", h.CreateTodoList)
		lists.GET("/:id", h.GetTodoList)
		lists.PUT("/:id", h.UpdateTodoList)
		lists.PATCH("/:id", h.UpdateTodoList)
		lists.DELETE("/:id", h.DeleteTodoList)
	}

	items := api.Group("/todo-items", requireAuth)
	{
		items.GET("", h.ListTodoItems)
		items.POST("", h.CreateTodoItem)
		items.GET("/:id", h.GetTodoItem)
		items.PUT("/:id", h.UpdateTodoItem)
		items.PATCH("/:id", h.UpdateTodoItem)
		items.DELETE("/:id", h.DeleteTodoItem)
		items.POST("/:id/toggle-done", h.ToggleTodoItem)
	}

	subitems := api.Group("/todo-subitems", requireAuth)
	{
		subitems.GET("", h.ListTodoSubItems)
		subitems.POST("", h.CreateTodoSubItem)
		subitems.GET("/:id", h.GetTodoSubItem)
		subitems.PUT("/:id", h.UpdateTodoSubItem)
		subitems.PATCH("/:id", h.UpdateTodoSubItem)
		subitems.DELETE("/:id", h.DeleteTodoSubItem)
	}

	priorities := api.Group("/todos/priorities", requireAuth)
	{
		priorities.GET("", middleware.ResponseCacheMiddleware("priorities", prioritiesCacheTTL, false), h.ListPriorities)
		priorities.GET("/:id", h.GetPriority)
	}

	admin := api.Group("/admin-tools", requireAuth, middleware.RequireSuperuser())
	{
		admin.POST("/purge-non-admin-users", h.PurgeNonAdminUsers)
	}
}
