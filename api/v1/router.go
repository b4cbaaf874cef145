package v1

import (
	"cf_bridge/api/v1/analytics"
	"cf_bridge/api/v1/auth"
	"cf_bridge/api/v1/cache"
	"cf_bridge/api/v1/connection"
	"cf_bridge/api/v1/d1"
	"cf_bridge/api/v1/dns"
	eventsapi "cf_bridge/api/v1/events"
	"cf_bridge/api/v1/middleware"
	"cf_bridge/api/v1/pagerules"
	"cf_bridge/api/v1/r2"
	"cf_bridge/api/v1/security"
	"cf_bridge/api/v1/settings"
	"cf_bridge/api/v1/ssl"
	"cf_bridge/api/v1/stream"
	"cf_bridge/api/v1/workers"
	"cf_bridge/api/v1/zonesettings"
	"cf_bridge/internal/config"
	"cf_bridge/internal/credential"
	"cf_bridge/internal/events"
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/service"
	"cf_bridge/internal/warming"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps bundles everything the API surface needs
type Deps struct {
	DB          *gorm.DB
	Config      *config.Config
	Credentials *credential.Store
	Cache       *service.CacheService
	DNS         *service.DNSService
	Security    *service.SecurityService
	SSL         *service.SSLService
	Workers     *service.WorkersService
	R2          *service.R2Service
	D1          *service.D1Service
	Stream      *service.StreamService
	Analytics   *service.AnalyticsService
	PageRules   *service.PageRulesService
	ZoneSet     *service.ZoneSettingsService
	Settings    *service.SettingsService
	Notifier    service.Notifier
	AutoPurge   *events.Worker
	Warmer      *warming.Warmer
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, deps *Deps) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			httpx.OK(c, gin.H{"pong": true})
		})

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", auth.LoginHandler(deps.DB, deps.Config))
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/me", meHandler)

			site := protected.Group("/sites/:siteId")

			connHandler := connection.NewHandler(deps.Credentials, deps.Notifier)
			conn := site.Group("/connection")
			{
				conn.GET("", connHandler.Status)
				conn.POST("/connect", connHandler.Connect)
				conn.POST("/disconnect", connHandler.Disconnect)
				conn.POST("/sso/initiate", connHandler.SSOInitiate)
				conn.POST("/sso/callback", connHandler.SSOCallback)
				conn.POST("/sso/complete", connHandler.SSOComplete)
			}

			cacheHandler := cache.NewHandler(deps.Cache, deps.Warmer, deps.Config.SiteURL)
			cacheGroup := site.Group("/cache")
			{
				cacheGroup.POST("/purge-all", cacheHandler.PurgeAll)
				cacheGroup.POST("/purge-urls", cacheHandler.PurgeURLs)
				cacheGroup.POST("/purge-tags", cacheHandler.PurgeTags)
				cacheGroup.POST("/purge-prefixes", cacheHandler.PurgePrefixes)
				cacheGroup.GET("/history", cacheHandler.History)
				cacheGroup.GET("/stats", cacheHandler.Stats)
				cacheGroup.POST("/warm", cacheHandler.Warm)
			}

			dnsHandler := dns.NewHandler(deps.DNS, deps.Credentials)
			dnsGroup := site.Group("/dns")
			{
				dnsGroup.GET("/records", dnsHandler.List)
				dnsGroup.POST("/records", dnsHandler.Create)
				dnsGroup.PUT("/records/:recordId", dnsHandler.Update)
				dnsGroup.DELETE("/records/:recordId", dnsHandler.Delete)
				dnsGroup.POST("/sync", dnsHandler.Sync)
				dnsGroup.GET("/export", dnsHandler.Export)
			}

			secHandler := security.NewHandler(deps.Security)
			secGroup := site.Group("/security")
			{
				secGroup.GET("/level", secHandler.GetLevel)
				secGroup.PUT("/level", secHandler.SetLevel)
				secGroup.PUT("/under-attack", secHandler.UnderAttack)
				secGroup.GET("/firewall-rules", secHandler.ListFirewallRules)
				secGroup.POST("/firewall-rules", secHandler.CreateFirewallRule)
				secGroup.POST("/firewall-rules/sync", secHandler.SyncFirewallRules)
				secGroup.PUT("/firewall-rules/:ruleId", secHandler.UpdateFirewallRule)
				secGroup.DELETE("/firewall-rules/:ruleId", secHandler.DeleteFirewallRule)
				secGroup.GET("/ip-rules", secHandler.ListIPRules)
				secGroup.POST("/ip-rules", secHandler.CreateIPRule)
				secGroup.DELETE("/ip-rules/:ruleId", secHandler.DeleteIPRule)
				secGroup.GET("/waf/packages", secHandler.ListWAFPackages)
				secGroup.PUT("/waf/packages/:packageId/rules/:ruleId", secHandler.SetWAFRuleMode)
				secGroup.GET("/events", secHandler.Events)
			}

			sslHandler := ssl.NewHandler(deps.SSL)
			sslGroup := site.Group("/ssl")
			{
				sslGroup.GET("/mode", sslHandler.GetMode)
				sslGroup.PUT("/mode", sslHandler.SetMode)
				sslGroup.GET("/certificates", sslHandler.Certificates)
			}

			workersHandler := workers.NewHandler(deps.Workers)
			workersGroup := site.Group("/workers")
			{
				workersGroup.GET("/scripts", workersHandler.ListScripts)
				workersGroup.GET("/scripts/:name", workersHandler.GetScript)
				workersGroup.PUT("/scripts/:name", workersHandler.DeployScript)
				workersGroup.POST("/scripts/:name/from-template", workersHandler.DeployTemplate)
				workersGroup.DELETE("/scripts/:name", workersHandler.DeleteScript)
				workersGroup.GET("/templates", workersHandler.ListTemplates)
				workersGroup.GET("/routes", workersHandler.ListRoutes)
				workersGroup.POST("/routes", workersHandler.CreateRoute)
				workersGroup.DELETE("/routes/:routeId", workersHandler.DeleteRoute)
				workersGroup.GET("/kv", workersHandler.ListKVNamespaces)
				workersGroup.POST("/kv", workersHandler.CreateKVNamespace)
				workersGroup.DELETE("/kv/:namespaceId", workersHandler.DeleteKVNamespace)
				workersGroup.GET("/kv/:namespaceId/keys", workersHandler.ListKVKeys)
				workersGroup.GET("/kv/:namespaceId/values/:key", workersHandler.ReadKVValue)
				workersGroup.PUT("/kv/:namespaceId/values/:key", workersHandler.WriteKVValue)
				workersGroup.DELETE("/kv/:namespaceId/values/:key", workersHandler.DeleteKVValue)
			}

			r2Handler := r2.NewHandler(deps.R2)
			r2Group := site.Group("/r2")
			{
				r2Group.GET("/buckets", r2Handler.List)
				r2Group.POST("/buckets", r2Handler.Create)
				r2Group.DELETE("/buckets/:name", r2Handler.Delete)
				r2Group.GET("/buckets/:name/objects", r2Handler.ListObjects)
				r2Group.PUT("/buckets/:name/objects/*key", r2Handler.UploadObject)
				r2Group.DELETE("/buckets/:name/objects/*key", r2Handler.DeleteObject)
			}

			d1Handler := d1.NewHandler(deps.D1)
			d1Group := site.Group("/d1")
			{
				d1Group.GET("/databases", d1Handler.List)
				d1Group.POST("/databases", d1Handler.Create)
				d1Group.GET("/databases/:dbId", d1Handler.Get)
				d1Group.DELETE("/databases/:dbId", d1Handler.Delete)
				d1Group.POST("/databases/:dbId/query", d1Handler.Query)
				d1Group.GET("/databases/:dbId/tables", d1Handler.Tables)
			}

			streamHandler := stream.NewHandler(deps.Stream)
			streamGroup := site.Group("/stream")
			{
				streamGroup.GET("/videos", streamHandler.ListVideos)
				streamGroup.GET("/videos/:videoId", streamHandler.GetVideo)
				streamGroup.DELETE("/videos/:videoId", streamHandler.DeleteVideo)
				streamGroup.GET("/live-inputs", streamHandler.ListLiveInputs)
				streamGroup.POST("/live-inputs", streamHandler.CreateLiveInput)
				streamGroup.GET("/stats", streamHandler.Stats)
			}

			analyticsHandler := analytics.NewHandler(deps.Analytics)
			analyticsGroup := site.Group("/analytics")
			{
				analyticsGroup.GET("/dashboard", analyticsHandler.Dashboard)
				analyticsGroup.GET("/history", analyticsHandler.History)
				analyticsGroup.POST("/snapshot", analyticsHandler.Snapshot)
			}

			pageRulesHandler := pagerules.NewHandler(deps.PageRules)
			pageRulesGroup := site.Group("/page-rules")
			{
				pageRulesGroup.GET("", pageRulesHandler.List)
				pageRulesGroup.POST("", pageRulesHandler.Create)
				pageRulesGroup.POST("/sync", pageRulesHandler.Sync)
				pageRulesGroup.PUT("/:ruleId", pageRulesHandler.Update)
				pageRulesGroup.DELETE("/:ruleId", pageRulesHandler.Delete)
			}

			zoneSetHandler := zonesettings.NewHandler(deps.ZoneSet)
			zoneSetGroup := site.Group("/zone-settings")
			{
				zoneSetGroup.GET("", zoneSetHandler.List)
				zoneSetGroup.GET("/:settingId", zoneSetHandler.Get)
				zoneSetGroup.PUT("/:settingId", zoneSetHandler.Update)
			}

			settingsHandler := settings.NewHandler(deps.Settings)
			settingsGroup := site.Group("/settings")
			{
				settingsGroup.GET("", settingsHandler.Get)
				settingsGroup.PUT("", settingsHandler.Update)
				settingsGroup.POST("/reset", settingsHandler.Reset)
			}

			eventsHandler := eventsapi.NewHandler(deps.AutoPurge)
			site.POST("/events", eventsHandler.Report)
		}
	}
}

// meHandler returns current user information
func meHandler(c *gin.Context) {
	uid, _ := c.Get("uid")
	username, _ := c.Get("username")
	role, _ := c.Get("role")

	httpx.OK(c, gin.H{
		"uid":      uid,
		"username": username,
		"role":     role,
	})
}
