/*
Package bridge talks to the game client that hosts the phone.

Outbound, layout changes are posted as NUI callbacks to
<BRIDGE_URL>/<resource>/<event> with values encoded as JSON strings:

	updateDockOrder      {"dock_order": "[...]"}
	phone:updateLayout   {"folders": "[...]", "home_screen_order": "[...]"}
	updateInstalledApps  {"apps": "[...]"}

Store wraps a Sender as a persist.Store and only posts the events whose
values changed. Inbound, ParseEvent decodes the {type, payload} push messages
setVisible, loadData, incomingCall and updateUnits.
*/
package bridge
