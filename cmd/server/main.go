package main

import (
	adminshandler "campusgate/internal/admins/handler"
	adminsrepository "campusgate/internal/admins/repository"
	adminsservice "campusgate/internal/admins/service"
	bookingshandler "campusgate/internal/bookings/handler"
	bookingsrepository "campusgate/internal/bookings/repository"
	bookingsservice "campusgate/internal/bookings/service"
	bookingsvalidator "campusgate/internal/bookings/validator"
	roomshandler "campusgate/internal/rooms/handler"
	roomsrepository "campusgate/internal/rooms/repository"
	roomsservice "campusgate/internal/rooms/service"
	roomsvalidator "campusgate/internal/rooms/validator"
	"campusgate/internal/sessions/handler"
	"campusgate/internal/sessions/reconciler"
	"campusgate/internal/sessions/repository"
	"campusgate/internal/sessions/service"
	studentshandler "campusgate/internal/students/handler"
	studentsrepository "campusgate/internal/students/repository"
	studentsservice "campusgate/internal/students/service"
	"campusgate/pkg/app"
	"campusgate/pkg/config"
	"campusgate/pkg/kafka"
	"campusgate/pkg/middleware"
	"campusgate/pkg/token"
)

const ServiceName = "campusgate"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	tokens, err := token.NewManager(cfg.JWTSecret, cfg.AdminTokenTTL, cfg.StudentTokenTTL)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize token manager", "error", err)
	}
	auth := middleware.NewAuthenticator(tokens, cfg.Log)

	// Repositories
	sessionRepo := repository.NewMongoSessionRepository(cfg)
	scanLockRepo := repository.NewScanLockRepository(cfg)
	bookingRepo := bookingsrepository.NewMongoBookingRepository(cfg)
	bookingLockRepo := bookingsrepository.NewBookingLockRepository(cfg)
	roomRepo := roomsrepository.NewMongoRoomRepository(cfg)
	studentRepo := studentsrepository.NewMongoStudentRepository(cfg)
	adminRepo := adminsrepository.NewMongoAdminRepository(cfg)

	// Gate events are optional; with no brokers configured the scan path
	// runs without a stream.
	var gateEvents service.GateEventPublisher
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaGateTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
		}
		gateEvents = producer
		cfg.Log.Info("Gate event stream enabled", "topic", cfg.KafkaGateTopic)
	} else {
		cfg.Log.Info("Gate event stream disabled: no Kafka brokers configured")
	}

	// Services
	studentService := studentsservice.NewStudentService(studentRepo, tokens, cfg)
	adminService := adminsservice.NewAdminService(adminRepo, tokens, cfg)
	roomService := roomsservice.NewRoomService(
		roomRepo,
		bookingsservice.NewRoomBookingLister(bookingRepo),
		roomsvalidator.NewRoomValidator(cfg.Log),
		cfg,
	)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		bookingLockRepo,
		roomService,
		studentService,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)
	sessionService := service.NewSessionService(sessionRepo, scanLockRepo, studentService, gateEvents, cfg)

	autoClose, err := reconciler.New(sessionService, cfg.Log, cfg.AutoCloseAt, cfg.AutoCloseTimezone)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize auto-close reconciler", "error", err)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewSessionHandler(sessionService, tokens, auth, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, auth, cfg.Log),
		roomshandler.NewRoomHandler(roomService, auth, cfg.Log),
		studentshandler.NewStudentHandler(studentService, auth, cfg.Log),
		adminshandler.NewAdminHandler(adminService, cfg.Log),
	)
	serverApp.AddWorker(autoClose)
	if producer != nil {
		serverApp.AddCloser("kafka-producer", producer)
	}

	cfg.Log.Info("Starting campus gate service")
	serverApp.Run()
}
