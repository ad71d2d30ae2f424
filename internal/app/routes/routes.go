package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/studentregistry/internal/app/controllers"
	"github.com/yigit/studentregistry/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, studentController *controllers.StudentController, events *websocket.Hub, staticDir string) {
	router.GET("/ping", studentController.Ping)

	// Static assets: placeholder image and local uploads
	router.Static("/static", staticDir)

	router.GET("/", studentController.Index)
	router.GET("/main", studentController.Main)
	router.POST("/savestudent", studentController.SaveStudent)
	router.POST("/editstudent", studentController.EditStudent)
	router.GET("/deletestudent", studentController.DeleteStudent)

	// Live list updates
	if events != nil {
		router.GET("/ws/students", events.HandleConnection)
	}
}
