// Package api exposes the game service over HTTP.
//
// Endpoints:
//
//	GET    /health                          liveness
//	GET    /api/configs                     list board configurations
//	POST   /api/configs                     save {"config_id": ..., <GameConfig>}
//	GET    /api/configs/{name}              one configuration
//	POST   /api/sessions                    create {"config_id": "small", "start": true}
//	GET    /api/sessions                    list, ?sort=created|accessed&order=asc|desc&limit=N
//	GET    /api/sessions/{id}               session info with current state
//	DELETE /api/sessions/{id}               stop and remove a session
//	POST   /api/sessions/{id}/start         start or restart the game
//	GET    /api/sessions/{id}/state         state as JSON, or the board with ?format=text
//	POST   /api/sessions/{id}/command       {"command": "left|right|down|rotate"}
//	POST   /api/sessions/{id}/bulk          {"commands": [...]}, at most 50 applied
//	GET    /api/highscore                   stored best score
//	GET    /ws?session={id}                 websocket state stream
//
// Errors are JSON bodies {"error": "..."}: unknown sessions and configs are
// 404, bad commands and configs 400, commands before the first start 409.
package api
