package main

func main() {
	cfg, log := LoadConfiguration()

	app, err := NewApp(cfg, log)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.cleanup()

	app.InitializeServer()
	app.StartServer()
}
