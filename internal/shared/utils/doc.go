// Package utils provides input validation shared by the HTTP and websocket layers.
//
// Validation:
//   - Player, app and folder identifier checks
//   - Payload size limits for requests and bridge messages
//   - Folder name sanitizing (markup stripped with bluemonday, whitespace collapsed)
//
// Example Usage:
//
//	if err := utils.ValidatePlayer(player); err != nil {
//	    return err
//	}
//	name := utils.SanitizeFolderName("<b>Work</b>") // "Work"
package utils
